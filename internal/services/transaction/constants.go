package transaction

// Pagination bounds
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50
)

// Sort orders
const (
	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

const (
	dateLayout       = "2006-01-02"
	CacheNameHistory = "history"
)
