/*
llamachat is a chat and text-generation client for a locally running
llama.cpp inference server.

The root package holds the error taxonomy shared by all packages. The
generation controller lives in pkg/manager, the HTTP client for the
inference server in pkg/llamacpp and the transcript types in pkg/schema.
*/
package llamachat
