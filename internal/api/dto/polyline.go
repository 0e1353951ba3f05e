package dto

type DecodeRequest struct {
	Polyline string `json:"polyline"`
	Strict   bool   `json:"strict"`
}

// Points are [lon, lat] pairs.
type DecodeResponse struct {
	Points [][]float64 `json:"points"`
}

type EncodeRequest struct {
	Points [][]float64 `json:"points"`
}

type EncodeResponse struct {
	Polyline string `json:"polyline"`
}

type PolylineErrorResponse struct {
	Error  string `json:"error"`
	Offset int    `json:"offset"`
}
