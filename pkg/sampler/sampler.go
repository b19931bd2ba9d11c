/*
sampler holds the sampling parameters sent with every completion request,
and converts them into the parameter names used by the llama.cpp server.
*/
package sampler

import (
	"encoding/json"
	"maps"

	// Packages
	llamachat "github.com/mutablelogic/go-llamachat"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Config are the sampling parameters for a completion request
type Config struct {
	Stream                 bool         `json:"stream" yaml:"stream" help:"Stream the response"`
	Temperature            float64      `json:"temperature" yaml:"temperature" help:"Sampling temperature"`
	TopK                   int          `json:"top_k" yaml:"top_k" help:"Top-K sampling"`
	TopP                   float64      `json:"top_p" yaml:"top_p" help:"Top-P (nucleus) sampling"`
	MinP                   float64      `json:"min_p" yaml:"min_p" help:"Min-P sampling"`
	TypicalP               float64      `json:"typical_p" yaml:"typical_p" help:"Locally typical sampling"`
	RepetitionPenalty      float64      `json:"repetition_penalty" yaml:"repetition_penalty" help:"Repetition penalty"`
	RepetitionPenaltyRange int          `json:"repetition_penalty_range" yaml:"repetition_penalty_range" help:"Number of tokens considered for the repetition penalty"`
	PresencePenalty        float64      `json:"presence_penalty" yaml:"presence_penalty" help:"Presence penalty"`
	FrequencyPenalty       float64      `json:"frequency_penalty" yaml:"frequency_penalty" help:"Frequency penalty"`
	MirostatMode           MirostatMode `json:"mirostat_mode" yaml:"mirostat_mode" help:"Mirostat mode"`
	MirostatTau            float64      `json:"mirostat_tau" yaml:"mirostat_tau" help:"Mirostat target entropy"`
	MirostatEta            float64      `json:"mirostat_eta" yaml:"mirostat_eta" help:"Mirostat learning rate"`
	DryBase                float64      `json:"dry_base" yaml:"dry_base" help:"DRY base"`
	DryMultiplier          float64      `json:"dry_multiplier" yaml:"dry_multiplier" help:"DRY multiplier"`
	DryAllowedLength       int          `json:"dry_allowed_length" yaml:"dry_allowed_length" help:"DRY allowed length"`
	DryPenaltyRange        int          `json:"dry_penalty_range" yaml:"dry_penalty_range" help:"DRY penalty range"`
	XTCThreshold           float64      `json:"xtc_threshold" yaml:"xtc_threshold" help:"XTC threshold"`
	XTCProbability         float64      `json:"xtc_probability" yaml:"xtc_probability" help:"XTC probability"`
	MaxTokens              int          `json:"max_tokens" yaml:"max_tokens" help:"Maximum number of tokens generated by the writer"`
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// Default returns the default sampling parameters
func Default() Config {
	return Config{
		Stream:                 true,
		Temperature:            0.8,
		TopK:                   40,
		TopP:                   0.95,
		MinP:                   0.05,
		TypicalP:               1.0,
		RepetitionPenalty:      1.1,
		RepetitionPenaltyRange: 64,
		PresencePenalty:        0,
		FrequencyPenalty:       0,
		MirostatMode:           MirostatOff,
		MirostatTau:            5.0,
		MirostatEta:            0.1,
		DryBase:                1.75,
		DryMultiplier:          0,
		DryAllowedLength:       2,
		DryPenaltyRange:        -1,
		XTCThreshold:           0.1,
		XTCProbability:         0,
		MaxTokens:              128,
	}
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (c Config) String() string {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Validate returns an error if any parameter is out of range
func (c Config) Validate() error {
	switch c.MirostatMode {
	case MirostatOff, MirostatV1, MirostatV2:
		break
	default:
		return llamachat.ErrBadParameter.Withf("mirostat mode: %q", string(c.MirostatMode))
	}
	if c.Temperature < 0 {
		return llamachat.ErrBadParameter.Withf("temperature: %v", c.Temperature)
	}
	if c.TopK < 0 {
		return llamachat.ErrBadParameter.Withf("top_k: %v", c.TopK)
	}
	for name, p := range map[string]float64{
		"top_p":           c.TopP,
		"min_p":           c.MinP,
		"typical_p":       c.TypicalP,
		"xtc_threshold":   c.XTCThreshold,
		"xtc_probability": c.XTCProbability,
	} {
		if p < 0 || p > 1 {
			return llamachat.ErrBadParameter.Withf("%s: %v", name, p)
		}
	}
	if c.RepetitionPenaltyRange < -1 {
		return llamachat.ErrBadParameter.Withf("repetition_penalty_range: %v", c.RepetitionPenaltyRange)
	}
	if c.DryPenaltyRange < -1 {
		return llamachat.ErrBadParameter.Withf("dry_penalty_range: %v", c.DryPenaltyRange)
	}
	if c.DryAllowedLength < 0 {
		return llamachat.ErrBadParameter.Withf("dry_allowed_length: %v", c.DryAllowedLength)
	}
	return nil
}

// ValidateMaxTokens returns an error unless MaxTokens is positive or -1
// for no limit. Only the writer sends it.
func (c Config) ValidateMaxTokens() error {
	if c.MaxTokens == 0 || c.MaxTokens < -1 {
		return llamachat.ErrBadParameter.Withf("max_tokens: %v", c.MaxTokens)
	}
	return nil
}

// Payload returns a copy of base with the sampling parameters merged in,
// using the server's parameter names. The mirostat mode is sent as its
// integer code. MaxTokens is not included, since only the writer sends it.
func (c Config) Payload(base map[string]any) map[string]any {
	result := make(map[string]any, len(base)+19)
	maps.Copy(result, base)
	result["stream"] = c.Stream
	result["temperature"] = c.Temperature
	result["top_k"] = c.TopK
	result["top_p"] = c.TopP
	result["min_p"] = c.MinP
	result["typical_p"] = c.TypicalP
	result["repeat_penalty"] = c.RepetitionPenalty
	result["repeat_last_n"] = c.RepetitionPenaltyRange
	result["presence_penalty"] = c.PresencePenalty
	result["frequency_penalty"] = c.FrequencyPenalty
	result["mirostat"] = c.MirostatMode.Code()
	result["mirostat_tau"] = c.MirostatTau
	result["mirostat_eta"] = c.MirostatEta
	result["dry_base"] = c.DryBase
	result["dry_multiplier"] = c.DryMultiplier
	result["dry_allowed_length"] = c.DryAllowedLength
	result["dry_penalty_last_n"] = c.DryPenaltyRange
	result["xtc_threshold"] = c.XTCThreshold
	result["xtc_probability"] = c.XTCProbability
	return result
}
