package model

// Stats is the dashboard summary.  All counts are taken from a single
// consistent read.
type Stats struct {
    TotalSheets      int `json:"total_sheets"`
    ActiveSheets     int `json:"active_sheets"`
    NumbersClaimed   int `json:"numbers_claimed"`
    NumbersAvailable int `json:"numbers_available"`
    TotalWinners     int `json:"total_winners"`
}
