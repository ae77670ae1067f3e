package models

// PageMeta describes the position of a page within a result set.
type PageMeta struct {
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	ItemCount       int64 `json:"itemCount"`
	PageCount       int   `json:"pageCount"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	HasNextPage     bool  `json:"hasNextPage"`
}

// HistoryPage is one page of a wallet's ledger.
type HistoryPage struct {
	Data []LedgerEntry `json:"data"`
	Meta PageMeta      `json:"meta"`
}
