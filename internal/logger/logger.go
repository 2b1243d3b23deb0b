package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"Fluxo/config"

	"github.com/rs/zerolog"
)

type contextKey string

const loggerKey contextKey = "logger"

var (
	mu  sync.RWMutex
	log = newLogger(os.Stdout, true).Level(zerolog.InfoLevel)
)

// Init configura o logger global a partir da configuracao.
func Init(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	l := newLogger(os.Stdout, cfg.Log.Pretty && !cfg.IsProduction()).
		Level(level).
		With().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Logger()

	mu.Lock()
	log = l
	mu.Unlock()
}

// SetOutput troca o destino do logger global. Usado em testes.
func SetOutput(w io.Writer) {
	mu.Lock()
	log = newLogger(w, false)
	mu.Unlock()
}

func newLogger(w io.Writer, pretty bool) zerolog.Logger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

func get() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

func Debug() *zerolog.Event { return get().Debug() }
func Info() *zerolog.Event  { return get().Info() }
func Warn() *zerolog.Event  { return get().Warn() }
func Error() *zerolog.Event { return get().Error() }
func Fatal() *zerolog.Event { return get().Fatal() }

// WithContext guarda um logger derivado no contexto.
func WithContext(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext devolve o logger do contexto ou o global.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
			return &l
		}
	}
	return get()
}

// With devolve um logger derivado do global com campos adicionais.
func With() zerolog.Context {
	return get().With()
}
