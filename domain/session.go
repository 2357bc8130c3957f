package domain

// Session is a point-in-time view of the client session.
type Session struct {
	Identity         *Identity `json:"identity,omitempty"`
	Loading          bool      `json:"loading"`
	BackendReachable bool      `json:"backendReachable"`
	// Degraded is set when the identity was produced by the fallback dataset.
	Degraded bool `json:"degraded"`
}

func (s Session) Authenticated() bool {
	return s.Identity != nil
}
