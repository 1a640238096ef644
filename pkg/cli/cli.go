package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	OutputName string // 出力するMIDIストリーム名（省略時は demo）
	OutputDir  string // 出力先ディレクトリ（空ならカレントディレクトリ）
	Label      string // タグに埋め込むラベル
	SongID     int    // タグに埋め込む曲ID（負数で省略）
	LogLevel   string // ログレベル（debug, info, warn, error）
	ShowHelp   bool   // ヘルプ表示フラグ
}

// ParseArgs コマンドライン引数を解析してConfigを返す
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("quattromid", flag.ContinueOnError)

	config := &Config{}

	fs.StringVar(&config.OutputDir, "dir", "", "出力先ディレクトリ")
	fs.StringVar(&config.OutputDir, "d", "", "出力先ディレクトリ（短縮形）")
	fs.StringVar(&config.Label, "label", "", "タグに埋め込むラベル")
	fs.IntVar(&config.SongID, "song-id", -1, "タグに埋め込む曲ID（負数で省略）")
	fs.StringVar(&config.LogLevel, "log-level", "info", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", "info", "ログレベル（短縮形）")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// 環境変数からログレベルを取得（コマンドラインフラグが優先）
	if config.LogLevel == "info" {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = strings.ToLower(logLevelEnv)
		}
	}

	// ログレベルの検証
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	// 位置引数（出力ストリーム名）
	config.OutputName = "demo"
	if fs.NArg() > 0 {
		config.OutputName = fs.Arg(0)
	}

	return config, nil
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 0 && arg[0] == '-' {
			flags = append(flags, arg)

			// 次の引数が値である可能性をチェック
			// （-l debug のような場合）
			if i+1 < len(args) && len(args[i+1]) > 0 && args[i+1][0] != '-' {
				// ブール型フラグでない場合は次の引数も追加
				if arg != "-h" && arg != "--help" {
					i++
					flags = append(flags, args[i])
				}
			}
		} else {
			// 位置引数
			positional = append(positional, arg)
		}
	}

	// フラグを前に、位置引数を後ろに配置
	return append(flags, positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp() {
	fmt.Fprintf(os.Stdout, `quattromid - MIDI stream demo writer

Usage:
  quattromid [options] [name]

Arguments:
  name    出力するMIDIストリーム名（省略時は demo）
          ".mid" 拡張子がなければ自動的に付与される

Options:
  -d, --dir <path>            出力先ディレクトリ（デフォルト: カレントディレクトリ）
  --label <text>              タグに埋め込むラベル
  --song-id <id>              タグに埋め込む曲ID（負数で省略、デフォルト: -1）
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
  -h, --help                  このヘルプを表示

Environment Variables:
  LOG_LEVEL=<level>           ログレベル

Examples:
  quattromid                            demo.mid をカレントディレクトリに書き出す
  quattromid overdrive                  overdrive.mid を書き出す
  quattromid -d out --song-id 18        out/demo.mid に曲ID入りタグを書き込む
  quattromid --label "Overdrive Stage"  ラベル入りタグを書き込む
`)
}
