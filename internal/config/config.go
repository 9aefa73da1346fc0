package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	playerrors "github.com/jscyril/mp3deck/pkg/errors"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

const (
	appName   = "mp3deck"
	envPrefix = "MP3DECK"
)

// Config holds application configuration
type Config struct {
	Window      WindowConfig  `mapstructure:"window"`
	Volume      float64       `mapstructure:"volume"`
	VolumeStep  float64       `mapstructure:"volume_step"`
	SeekStep    time.Duration `mapstructure:"seek_step"`
	Loop        bool          `mapstructure:"loop"`
	StartDir    string        `mapstructure:"start_dir"`
	Audio       AudioConfig   `mapstructure:"audio"`
	Log         LogConfig     `mapstructure:"log"`
	Debug       bool          `mapstructure:"debug"`
	KeyBindings KeyMap        `mapstructure:"keys"`
}

// WindowConfig fixes the title and size of the player screen.
type WindowConfig struct {
	Title  string `mapstructure:"title"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
}

// AudioConfig configures the speaker.
type AudioConfig struct {
	SampleRate int           `mapstructure:"sample_rate"`
	Buffer     time.Duration `mapstructure:"buffer"`
}

// LogConfig configures the rotating log file.
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// KeyMap defines keyboard shortcuts. Each entry may list several keys
// separated by commas.
type KeyMap struct {
	Open        string `mapstructure:"open"`
	PlayPause   string `mapstructure:"play_pause"`
	Stop        string `mapstructure:"stop"`
	Loop        string `mapstructure:"loop"`
	VolumeUp    string `mapstructure:"volume_up"`
	VolumeDown  string `mapstructure:"volume_down"`
	SeekStart   string `mapstructure:"seek_start"`
	SeekFive    string `mapstructure:"seek_five"`
	SeekForward string `mapstructure:"seek_forward"`
	SeekBack    string `mapstructure:"seek_back"`
	Help        string `mapstructure:"help"`
	Quit        string `mapstructure:"quit"`
}

// LoadOptions selects where configuration comes from.
type LoadOptions struct {
	// ConfigFile, when set, is used instead of searching SearchDirs.
	ConfigFile string
	// EnvFile is a dotenv file merged into the environment first.
	// Missing files are ignored.
	EnvFile string
}

// GetDefaultConfig returns default configuration
func GetDefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Simple MP3 Player",
			Width:  60,
			Height: 22,
		},
		Volume:     50,
		VolumeStep: 5,
		SeekStep:   5 * time.Second,
		Audio: AudioConfig{
			SampleRate: 44100,
			Buffer:     100 * time.Millisecond,
		},
		Log: LogConfig{
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
		KeyBindings: KeyMap{
			Open:        "o",
			PlayPause:   " ,p",
			Stop:        "s",
			Loop:        "l",
			VolumeUp:    "+,=,up",
			VolumeDown:  "-,down",
			SeekStart:   "home,0",
			SeekFive:    "f",
			SeekForward: "right",
			SeekBack:    "left",
			Help:        "?",
			Quit:        "q,ctrl+c",
		},
	}
}

// SetDefaults registers every key with its default so that environment
// variables can override keys absent from the config file.
func SetDefaults(v *viper.Viper) {
	d := GetDefaultConfig()

	v.SetDefault("window.title", d.Window.Title)
	v.SetDefault("window.width", d.Window.Width)
	v.SetDefault("window.height", d.Window.Height)
	v.SetDefault("volume", d.Volume)
	v.SetDefault("volume_step", d.VolumeStep)
	v.SetDefault("seek_step", d.SeekStep)
	v.SetDefault("loop", d.Loop)
	v.SetDefault("start_dir", d.StartDir)
	v.SetDefault("audio.sample_rate", d.Audio.SampleRate)
	v.SetDefault("audio.buffer", d.Audio.Buffer)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("debug", d.Debug)

	v.SetDefault("keys.open", d.KeyBindings.Open)
	v.SetDefault("keys.play_pause", d.KeyBindings.PlayPause)
	v.SetDefault("keys.stop", d.KeyBindings.Stop)
	v.SetDefault("keys.loop", d.KeyBindings.Loop)
	v.SetDefault("keys.volume_up", d.KeyBindings.VolumeUp)
	v.SetDefault("keys.volume_down", d.KeyBindings.VolumeDown)
	v.SetDefault("keys.seek_start", d.KeyBindings.SeekStart)
	v.SetDefault("keys.seek_five", d.KeyBindings.SeekFive)
	v.SetDefault("keys.seek_forward", d.KeyBindings.SeekForward)
	v.SetDefault("keys.seek_back", d.KeyBindings.SeekBack)
	v.SetDefault("keys.help", d.KeyBindings.Help)
	v.SetDefault("keys.quit", d.KeyBindings.Quit)
}

// Load reads the dotenv file, the config file, and MP3DECK_* environment
// variables into v and decodes the result.
func Load(v *viper.Viper, opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	SetDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		for _, dir := range SearchDirs() {
			v.AddConfigPath(dir)
		}
		v.SetConfigName(appName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return Decode(v)
}

// Decode unmarshals and validates the current settings of v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.StartDir != "" {
		dir, err := homedir.Expand(cfg.StartDir)
		if err != nil {
			return nil, fmt.Errorf("expand start_dir: %w", err)
		}
		cfg.StartDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the player cannot work with.
func (c *Config) Validate() error {
	if c.Volume < 0 || c.Volume > 100 {
		return fmt.Errorf("%w, got %v", playerrors.ErrInvalidVolume, c.Volume)
	}
	if c.VolumeStep <= 0 || c.VolumeStep > 100 {
		return fmt.Errorf("volume_step must be between 0 and 100, got %v", c.VolumeStep)
	}
	if c.SeekStep <= 0 {
		return fmt.Errorf("seek_step must be positive, got %s", c.SeekStep)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Buffer <= 0 {
		return fmt.Errorf("audio.buffer must be positive, got %s", c.Audio.Buffer)
	}
	if c.Window.Width < 20 {
		return fmt.Errorf("window.width must be at least 20, got %d", c.Window.Width)
	}
	return nil
}

// Watch reloads the config file on change and hands the decoded result to
// onChange. Invalid edits are reported through onError and ignored.
func Watch(v *viper.Viper, onChange func(*Config), onError func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Decode(v)
		if err != nil {
			onError(fmt.Errorf("reload %s: %w", e.Name, err))
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// SearchDirs returns the directories searched for mp3deck.yml, most
// specific first.
func SearchDirs() []string {
	var dirs []string

	if c := os.Getenv("MP3DECK_CONFIG_HOME"); c != "" {
		dirs = append(dirs, c)
	}
	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append(dirs, filepath.Join(c, appName))
	}

	scope := gap.NewScope(gap.User, appName)
	if scoped, err := scope.ConfigDirs(); err == nil {
		dirs = append(dirs, scoped...)
	}
	return dirs
}

// DefaultLogFile returns the log path used when log.file is unset.
func DefaultLogFile() string {
	scope := gap.NewScope(gap.User, appName)
	path, err := scope.LogPath(appName + ".log")
	if err != nil {
		return filepath.Join(os.TempDir(), appName+".log")
	}
	return path
}
