package model

import "time"

// BirdCapture はユーザーが観察日誌に記録した野鳥の観察記録。
// en: 英名, cnt: 国, loc: 場所, time: 観察時刻（自由入力）, rmk: 備考
type BirdCapture struct {
	ID        string
	UserID    string
	En        string
	Cnt       string
	Loc       string
	Time      string
	Rmk       string
	Public    bool
	CreatedAt time.Time
}

// AudioFavorite はユーザーがお気に入り登録した録音。
type AudioFavorite struct {
	ID        string
	UserID    string
	En        string
	Cnt       string
	Loc       string
	Time      string
	URLSound  string
	CreatedAt time.Time
}
