package app

import (
	"fmt"
	"log/slog"

	"github.com/gumoraes525/QuattroPlay-midi/pkg/cli"
	"github.com/gumoraes525/QuattroPlay-midi/pkg/fileutil"
	"github.com/gumoraes525/QuattroPlay-midi/pkg/logger"
	"github.com/gumoraes525/QuattroPlay-midi/pkg/smf"
)

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config *cli.Config
	log    *slog.Logger
}

// New Applicationを作成
func New() *Application {
	return &Application{}
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp {
		cli.PrintHelp()
		return nil
	}

	// 2. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.log.Info("Application started")

	// 3. デモストリームの書き出し
	if err := app.writeDemoStream(); err != nil {
		return fmt.Errorf("failed to write demo stream: %w", err)
	}

	app.log.Info("Demo stream written", "name", app.config.OutputName, "dir", app.config.OutputDir)
	return nil
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// initLogger ロガーを初期化
func (app *Application) initLogger() error {
	if err := logger.InitLogger(app.config.LogLevel); err != nil {
		return err
	}
	app.log = logger.GetLogger()
	return nil
}

// writeDemoStream 対応している全メッセージ種別を使った短いデモを書き出す
func (app *Application) writeDemoStream() error {
	w := smf.NewWriter(
		smf.WithFileSystem(fileutil.NewRealFS(app.config.OutputDir)),
		smf.WithLogger(app.log),
	)

	if err := w.Open(app.config.OutputName); err != nil {
		return err
	}

	// タグはラベルか曲IDのどちらかが指定されたときだけ書く
	if app.config.Label != "" || app.config.SongID >= 0 {
		if err := w.WriteTag(app.config.Label, app.config.SongID); err != nil {
			return err
		}
	}

	// グランドピアノを選び、音量を整えてからアルペジオを書く
	if err := w.WriteEvent(smf.CommandProgramChange, 0, 0, 0); err != nil {
		return err
	}
	if err := w.WriteEvent(smf.CommandControlChange, 0, 7, 100); err != nil {
		return err
	}
	for _, note := range []uint16{60, 64, 67, 72} {
		if err := w.WriteEvent(smf.CommandNoteOn, 0, note, 100); err != nil {
			return err
		}
		// 四分音符ぶんの遅延（分解能480、1tick = 10単位）
		if err := w.Delay(4800); err != nil {
			return err
		}
		if err := w.WriteEvent(smf.CommandNoteOff, 0, note, 0); err != nil {
			return err
		}
	}

	return w.Close()
}
