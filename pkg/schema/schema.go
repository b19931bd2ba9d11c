/*
schema holds the transcript types shared between the generation controller
and the inference server client: messages and their attachments, the
conversation, the writer document and the events produced by a completion.
*/
package schema

import "encoding/json"

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func stringify[T any](v T) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}
