package leaderboard

type Entry struct {
	UserID   string  `json:"user_id" db:"user_id"`
	Username string  `json:"username" db:"username"`
	ImageURL *string `json:"image_url" db:"image_url"`
	Points   int     `json:"points" db:"points"`
	EloLevel int     `json:"elo_level" db:"elo_level"`
	EloName  string  `json:"elo_name"`
	Position int     `json:"position"`
}

type Leaderboard struct {
	Entries      []*Entry `json:"entries"`
	UserPosition *Entry   `json:"user_position,omitempty"`
	TotalUsers   int      `json:"total_users"`
	Page         int      `json:"page"`
	PageSize     int      `json:"page_size"`
}
