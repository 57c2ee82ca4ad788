package domain

// Order is unique per (UserID, Name)
type Order struct {
	ID     int64  `db:"id"`
	UserID int64  `db:"user_id"`
	Name   string `db:"name"`
}

type OrderEffect struct {
	ID           int64  `db:"id"`
	OrderID      int64  `db:"order_id"`
	EffectName   string `db:"effect_name"`
	MinValue     int64  `db:"min_value"`
	MaxValue     int64  `db:"max_value"`
	DesiredValue int64  `db:"desired_value"`
}

type Session struct {
	ID        int64 `db:"id"`
	UserID    int64 `db:"user_id"`
	OrderID   int64 `db:"order_id"`
	Timestamp int64 `db:"timestamp"`
}

type SessionEffect struct {
	ID           string `db:"id"`
	SessionID    int64  `db:"session_id"`
	EffectName   string `db:"effect_name"`
	CurrentValue int64  `db:"current_value"`
}

type SessionRunePrice struct {
	ID        string `db:"id"`
	SessionID int64  `db:"session_id"`
	RuneID    int64  `db:"rune_id"`
	RuneName  string `db:"rune_name"`
	Price     int64  `db:"price"`
}

type RuneHistory struct {
	ID              int64 `db:"id"`
	UserID          int64 `db:"user_id"`
	SessionID       int64 `db:"session_id"`
	RuneID          int64 `db:"rune_id"`
	IsTenta         bool  `db:"is_tenta"`
	HasSucceed      bool  `db:"has_succeed"`
	HasSynchronized bool  `db:"has_synchronized"`
}

type RuneHistoryEffect struct {
	ID            string `db:"id"`
	RuneHistoryID int64  `db:"rune_history_id"`
	EffectName    string `db:"effect_name"`
	CurrentValue  int64  `db:"current_value"`
}

// User owns every batch it submits
type User struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Token    string `db:"token"`
	IsActive bool   `db:"is_active"`
}

// EntitySet is the normalized output of one job. Header rows precede
// children in write order.
type EntitySet struct {
	Orders             []Order
	OrderEffects       []OrderEffect
	Sessions           []Session
	SessionEffects     []SessionEffect
	SessionRunePrices  []SessionRunePrice
	RuneHistories      []RuneHistory
	RuneHistoryEffects []RuneHistoryEffect
}

// RowCount is the total number of rows across all entity types
func (s *EntitySet) RowCount() int {
	return len(s.Orders) + len(s.OrderEffects) + len(s.Sessions) + len(s.SessionEffects) +
		len(s.SessionRunePrices) + len(s.RuneHistories) + len(s.RuneHistoryEffects)
}
