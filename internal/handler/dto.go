package handler

import (
	"time"

	"github.com/iliyamo/festa-do-viso/internal/model"
)

// Response shapes.  Public ones never carry a participant contact.

type sheetResp struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	Claimed   int       `json:"claimed"`
	Available int       `json:"available"`
}

func toSheet(s *model.Sheet) sheetResp {
	return sheetResp{
		ID:        s.ID,
		Name:      s.Name,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
		Claimed:   s.ClaimedCount,
		Available: s.Available(),
	}
}

func toSheets(in []*model.Sheet) []sheetResp {
	out := make([]sheetResp, 0, len(in))
	for _, s := range in {
		out = append(out, toSheet(s))
	}
	return out
}

type publicClaimResp struct {
	ID        uint64    `json:"id"`
	SheetID   uint64    `json:"sheet_id"`
	Number    int       `json:"number"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type claimResp struct {
	publicClaimResp
	Contact string `json:"contact"`
}

func toPublicClaim(c *model.Claim) publicClaimResp {
	return publicClaimResp{ID: c.ID, SheetID: c.SheetID, Number: c.Number, Name: c.Name, CreatedAt: c.CreatedAt}
}

func toClaim(c *model.Claim) claimResp {
	return claimResp{publicClaimResp: toPublicClaim(c), Contact: c.Contact}
}

type numbersResp struct {
	SheetID   uint64 `json:"sheet_id"`
	Occupied  []int  `json:"occupied"`
	Available []int  `json:"available"`
}

// freeNumbers returns the grid numbers missing from occupied, which must be
// sorted ascending.
func freeNumbers(occupied []int) []int {
	out := make([]int, 0, model.SheetCapacity-len(occupied))
	i := 0
	for n := model.MinNumber; n <= model.MaxNumber; n++ {
		if i < len(occupied) && occupied[i] == n {
			i++
			continue
		}
		out = append(out, n)
	}
	return out
}

type numberResp struct {
	SheetID   uint64 `json:"sheet_id"`
	Number    int    `json:"number"`
	Available bool   `json:"available"`
}

type adminNumberResp struct {
	numberResp
	Claim *claimResp `json:"claim"`
}

type publicWinnerResp struct {
	ID            uint64    `json:"id"`
	SheetID       uint64    `json:"sheet_id"`
	SheetName     string    `json:"sheet_name"`
	DrawDate      string    `json:"draw_date"`
	WinningNumber int       `json:"winning_number"`
	WinnerName    string    `json:"winner_name"`
	CreatedAt     time.Time `json:"created_at"`
}

type winnerResp struct {
	publicWinnerResp
	WinnerContact string `json:"winner_contact"`
}

func toPublicWinner(w *model.WinnerRecord) publicWinnerResp {
	return publicWinnerResp{
		ID:            w.ID,
		SheetID:       w.SheetID,
		SheetName:     w.SheetName,
		DrawDate:      w.DrawDate.Format(model.DateLayout),
		WinningNumber: w.WinningNumber,
		WinnerName:    w.WinnerName,
		CreatedAt:     w.CreatedAt,
	}
}

func toWinner(w *model.WinnerRecord) winnerResp {
	return winnerResp{publicWinnerResp: toPublicWinner(w), WinnerContact: w.WinnerContact}
}

func toPublicWinners(in []*model.WinnerRecord) []publicWinnerResp {
	out := make([]publicWinnerResp, 0, len(in))
	for _, w := range in {
		out = append(out, toPublicWinner(w))
	}
	return out
}

func toWinners(in []*model.WinnerRecord) []winnerResp {
	out := make([]winnerResp, 0, len(in))
	for _, w := range in {
		out = append(out, toWinner(w))
	}
	return out
}

type outcomeResp struct {
	Outcome       model.OutcomeKind `json:"outcome"`
	SheetID       uint64            `json:"sheet_id"`
	DrawDate      string            `json:"draw_date"`
	WinningNumber int               `json:"winning_number"`
	Winner        *winnerResp       `json:"winner,omitempty"`
}

func toOutcome(o model.Outcome) outcomeResp {
	r := outcomeResp{
		Outcome:       o.Kind,
		SheetID:       o.SheetID,
		DrawDate:      o.DrawDate.Format(model.DateLayout),
		WinningNumber: o.WinningNumber,
	}
	if o.Winner != nil {
		w := toWinner(o.Winner)
		r.Winner = &w
	}
	return r
}

// Request bodies.

type claimReq struct {
	Number  int    `json:"number"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type sheetReq struct {
	Name string `json:"name"`
}

type drawReq struct {
	DrawDate      string `json:"draw_date"`
	WinningNumber int    `json:"winning_number"`
}
