package dto

import "time"

type PlotRequest struct {
	DepartAt *time.Time `json:"depart_at"`
	Building string     `json:"building"`
}

type SkippedRowResponse struct {
	Row      int    `json:"row"`
	Building string `json:"building"`
	Reason   string `json:"reason"`
}

type PlotResponse struct {
	Layer    string               `json:"layer"`
	DepartAt time.Time            `json:"depart_at"`
	Total    int                  `json:"total"`
	Plotted  int                  `json:"plotted"`
	Empty    int                  `json:"empty"`
	Skipped  []SkippedRowResponse `json:"skipped"`
	RouteIDs []string             `json:"route_ids"`
}
