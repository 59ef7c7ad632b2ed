package api

type RunRequest struct {
	Program string  `json:"program"`
	Inputs  []int64 `json:"inputs"`
	// address to value, applied before the first instruction
	Patches map[int64]int64 `json:"patches"`
}

type RunResponse struct {
	Status       string  `json:"status"`
	Outputs      []int64 `json:"outputs"`
	Memory0      int64   `json:"memory0"`
	Instructions int64   `json:"instructions"`
}

type CreateSessionRequest struct {
	Program string  `json:"program"`
	Inputs  []int64 `json:"inputs"`
}

type SessionResponse struct {
	ID      string  `json:"id"`
	Status  string  `json:"status"`
	Outputs []int64 `json:"outputs"`
}

type InputRequest struct {
	Values []int64 `json:"values"`
}

type MemoryResponse struct {
	Addr  int64 `json:"addr"`
	Value int64 `json:"value"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
