package schema

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Modalities are the input types supported by the loaded model
type Modalities struct {
	Vision bool `json:"vision" yaml:"vision"`
	Audio  bool `json:"audio" yaml:"audio"`
}

// Props are the server properties returned by GET /props
type Props struct {
	Modalities Modalities `json:"modalities"`
	ModelPath  string     `json:"model_path,omitempty"`
	BuildInfo  string     `json:"build_info,omitempty"`
	TotalSlots int        `json:"total_slots,omitempty"`
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (m Modalities) String() string {
	return stringify(m)
}

func (p Props) String() string {
	return stringify(p)
}
