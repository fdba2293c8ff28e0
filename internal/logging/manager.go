package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
)

// Options задает, как registry создает логгеры подсистем
type Options struct {
	Files   bool      // писать файл <component>_*.log в LogDir
	Console io.Writer // nil = os.Stdout
	Level   LogLevel  // минимальный уровень консоли
	File    LogLevel  // минимальный уровень файла
}

// Registry хранит по одному логгеру на подсистему (world, server, events...)
type Registry struct {
	mu     sync.Mutex
	byName map[string]*Logger
	opts   Options
}

var components = NewRegistry(Options{Level: INFO, File: TRACE})

// NewRegistry создаёт пустой registry
func NewRegistry(opts Options) *Registry {
	return &Registry{byName: make(map[string]*Logger), opts: opts}
}

// Components возвращает глобальный registry подсистем
func Components() *Registry {
	return components
}

// Configure меняет параметры; уровни применяются и к уже созданным логгерам,
// файловый вывод только к новым
func (r *Registry) Configure(opts Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts = opts
	for _, l := range r.byName {
		l.SetLevels(opts.Level, opts.File)
	}
}

// Get возвращает логгер подсистемы, создавая его при первом обращении
func (r *Registry) Get(component string) (*Logger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.byName[component]; ok {
		return l, nil
	}

	var l *Logger
	if r.opts.Files {
		fl, err := NewLogger(component)
		if err != nil {
			return nil, fmt.Errorf("logger %s: %w", component, err)
		}
		l = fl
	} else {
		l = NewConsoleLogger(component, r.console())
	}
	l.SetLevels(r.opts.Level, r.opts.File)
	r.byName[component] = l
	return l, nil
}

// For как Get, но при ошибке файла отдаёт консольный логгер
func (r *Registry) For(component string) *Logger {
	l, err := r.Get(component)
	if err == nil {
		return l
	}
	Warn("логгер %s без файла: %v", component, err)

	r.mu.Lock()
	defer r.mu.Unlock()
	l = NewConsoleLogger(component, r.console())
	l.SetLevels(r.opts.Level, r.opts.File)
	r.byName[component] = l
	return l
}

func (r *Registry) console() io.Writer {
	if r.opts.Console != nil {
		return r.opts.Console
	}
	return os.Stdout
}

// SetLevel меняет уровни одной подсистемы
func (r *Registry) SetLevel(component string, console, file LogLevel) error {
	r.mu.Lock()
	l, ok := r.byName[component]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("логгер %s не зарегистрирован", component)
	}
	l.SetLevels(console, file)
	return nil
}

// Names возвращает отсортированные имена подсистем
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CloseAll закрывает файлы и очищает registry; возвращает первую ошибку
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	for name, l := range r.byName {
		if err := l.Close(); err != nil && first == nil {
			first = fmt.Errorf("close %s: %w", name, err)
		}
	}
	r.byName = make(map[string]*Logger)
	return first
}

// GetComponentLogger возвращает логгер подсистемы из глобального registry
func GetComponentLogger(component string) *Logger {
	return components.For(component)
}

// GetServerLogger возвращает логгер REST-сервера
func GetServerLogger() *Logger { return GetComponentLogger("server") }

// GetWorldLogger возвращает логгер генерации мира
func GetWorldLogger() *Logger { return GetComponentLogger("world") }
