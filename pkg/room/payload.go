package room

// PayloadIn is a message from the web client. Action selects the handler;
// the remaining fields are read per action.
type PayloadIn struct {
	Action string `json:"action"`

	// join
	Name  string `json:"name,omitempty"`
	Token string `json:"token,omitempty"`

	// takeSeat
	Seat *int `json:"seat,omitempty"`

	// action
	Kind   string `json:"kind,omitempty"`
	Amount int    `json:"amount,omitempty"`

	// Context is echoed back so the client can correlate the response
	Context string `json:"context,omitempty"`
}
