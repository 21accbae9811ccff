// Package recording は外部録音API（xeno-canto）のデータ型と、
// 録音メタデータから再生用URLを導出する処理、サーバー側のプロキシを提供する。
package recording

import "encoding/json"

// DefaultQueryURL は録音一覧の既定の取得先（コスタリカの録音）。
const DefaultQueryURL = "https://www.xeno-canto.org/api/2/recordings?query=cnt%3A%22Costa%20Rica%22"

// Recording は録音APIが返す1件の録音メタデータ。
// 外部APIのスナップショットとして読み取り専用で扱う。
type Recording struct {
	ID       string            `json:"id"`
	Gen      string            `json:"gen"`
	Sp       string            `json:"sp"`
	En       string            `json:"en"`
	Rec      string            `json:"rec"`
	Cnt      string            `json:"cnt"`
	Loc      string            `json:"loc"`
	Type     string            `json:"type"`
	URL      string            `json:"url"`
	File     string            `json:"file"`
	FileName string            `json:"file-name"`
	Sono     map[string]string `json:"sono"`
	Q        string            `json:"q"`
	Length   string            `json:"length"`
	Time     string            `json:"time"`
	Date     string            `json:"date"`
}

// Response は録音一覧APIのレスポンス。
// numRecordings等はAPIが文字列で返すためjson.Numberで受ける。
type Response struct {
	NumRecordings json.Number `json:"numRecordings"`
	NumSpecies    json.Number `json:"numSpecies"`
	Page          json.Number `json:"page"`
	NumPages      json.Number `json:"numPages"`
	Recordings    []Recording `json:"recordings"`
}
