package model

import "time"

// Show represents a scheduled screening.  A show owns a fixed set of
// seats created once at setup time; seats never outlive or detach from
// their show.
//
// Fields:
//  ID        – primary key (UUID string).
//  Title     – movie title.
//  StartsAt  – when the show begins.
//  CreatedAt – creation timestamp.
type Show struct {
	ID        string    // shows.id
	Title     string    // shows.title
	StartsAt  time.Time // shows.starts_at
	CreatedAt time.Time // shows.created_at
}

// ShowStats aggregates the seat counts of a show by status.  It backs
// the stats endpoint and is recomputed on demand; StatsChanged
// notifications are only hints to re-fetch it.
type ShowStats struct {
	ShowID    string `json:"show_id"`
	Total     int    `json:"total"`
	Available int    `json:"available"`
	Held      int    `json:"held"`
	Booked    int    `json:"booked"`
}
