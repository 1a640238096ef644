// Package fileutil provides unified file system access for real and
// in-memory storage. The encoder persists finished streams through the
// FileSystem interface so tests and embedding callers can capture output
// without touching the disk.
package fileutil

// FileSystem は実ファイルシステムとメモリ上のファイルシステムを統一的に扱うインターフェース
type FileSystem interface {
	// WriteFile はデータをファイルへ書き込む
	WriteFile(name string, data []byte) error
	// ReadFile はファイルの内容を読み込む
	ReadFile(name string) ([]byte, error)
	// BasePath はベースパスを返す
	BasePath() string
}
