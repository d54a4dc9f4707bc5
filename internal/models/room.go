package models

import "time"

// Room represents a bookable teaching room.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Building  string    `db:"building" json:"building"`
	RoomType  string    `db:"room_type" json:"room_type"`
	Capacity  int       `db:"capacity" json:"capacity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RoomFilter captures listing criteria for rooms.
type RoomFilter struct {
	Building string
	RoomType string
	Search   string
	Page     int
	PageSize int
}

// RoomCSVRow is the gocsv-tagged shape for bulk room import.
type RoomCSVRow struct {
	Code     string `csv:"code"`
	Building string `csv:"building"`
	RoomType string `csv:"room_type"`
	Capacity int    `csv:"capacity"`
}
