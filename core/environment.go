package core

// Environment classifies the runtime hosting the app.
type Environment int

const (
	// EnvStandalone is a plain page with no embedding host; signing needs
	// a locally available wallet.
	EnvStandalone Environment = iota

	// EnvEmbeddedFrame is a page running inside a host frame runtime that
	// supplies its own wallet bridge and identity context.
	EnvEmbeddedFrame
)

func (e Environment) String() string {
	if e == EnvEmbeddedFrame {
		return "embedded-frame"
	}
	return "standalone"
}

// ParseEnvironment is the inverse of Environment.String. Unknown values
// fall back to standalone.
func ParseEnvironment(s string) Environment {
	if s == EnvEmbeddedFrame.String() {
		return EnvEmbeddedFrame
	}
	return EnvStandalone
}

// FrameUser is the identity context supplied by an embedding host.
type FrameUser struct {
	FID               uint64   `json:"fid"`
	ConnectedAddress  string   `json:"connectedAddress,omitempty"`
	VerifiedAddresses []string `json:"verifiedAddresses,omitempty"`
}

// ShareCard is the displayable record summary handed to the presentation
// layer. Rendering it is not this module's concern.
type ShareCard struct {
	Address  string `json:"address"`
	Streak   int    `json:"streak"`
	Total    int    `json:"total"`
	LastDate string `json:"lastDate,omitempty"`
	ShareURL string `json:"shareUrl"`
}
