package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Default file locations, relative to the working directory.
const (
	DefaultRoomsFile        = "rooms.json"
	DefaultAsanaConfigFile  = "asana_config.json"
	DefaultClientSecretFile = "client_secret.json"
	DefaultTokenFile        = "google_oauth_token.json"
)

// EnvPrefixAsana is the prefix for environment overrides of AsanaConfig.
const EnvPrefixAsana = "ROOMUTIL_ASANA"

var (
	// ErrInvalidRoom is returned when a room entry fails validation.
	ErrInvalidRoom = errors.New("invalid room")

	// ErrInvalidAsanaConfig is returned when Asana credentials are incomplete.
	ErrInvalidAsanaConfig = errors.New("invalid asana config")
)

// Paths holds the locations of every local file a run touches.
type Paths struct {
	Rooms        string
	AsanaConfig  string
	ClientSecret string
	Token        string
}

// DefaultPaths returns the file locations used when no flag overrides them.
func DefaultPaths() Paths {
	return Paths{
		Rooms:        DefaultRoomsFile,
		AsanaConfig:  DefaultAsanaConfigFile,
		ClientSecret: DefaultClientSecretFile,
		Token:        DefaultTokenFile,
	}
}

// Room is a bookable conference room backed by a resource calendar.
type Room struct {
	Name string `mapstructure:"name" json:"name" yaml:"name"`
	// URL is the calendar ID of the room's resource calendar.
	URL   string `mapstructure:"url" json:"url" yaml:"url"`
	Seats int    `mapstructure:"room_seats" json:"room_seats" yaml:"room_seats"`
}

// Validate checks that the room can be reported on.
func (r Room) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRoom)
	}
	if strings.TrimSpace(r.URL) == "" {
		return fmt.Errorf("%w: room %q has no calendar url", ErrInvalidRoom, r.Name)
	}
	if r.Seats <= 0 {
		return fmt.Errorf("%w: room %q must have a positive room_seats, got %d", ErrInvalidRoom, r.Name, r.Seats)
	}
	return nil
}

type roomsFile struct {
	Rooms []Room `mapstructure:"rooms"`
}

// LoadRooms reads and validates the room list from a JSON file of the form
// {"rooms": [{"name": ..., "url": ..., "room_seats": ...}]}.
func LoadRooms(path string) ([]Room, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read rooms file %s: %w", path, err)
	}

	var f roomsFile
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("failed to decode rooms file %s: %w", path, err)
	}

	if len(f.Rooms) == 0 {
		return nil, fmt.Errorf("%w: no rooms defined in %s", ErrInvalidRoom, path)
	}
	for i, room := range f.Rooms {
		if err := room.Validate(); err != nil {
			return nil, fmt.Errorf("rooms file %s, entry %d: %w", path, i, err)
		}
	}

	return f.Rooms, nil
}

// AsanaConfig holds the credentials and destination for the Asana publisher.
type AsanaConfig struct {
	PersonalAccessToken string `mapstructure:"personal_access_token"`
	WorkspaceID         string `mapstructure:"workspace_id"`
	ProjectID           string `mapstructure:"project_id"`
}

// Validate checks that every field needed to create a task is present.
func (c AsanaConfig) Validate() error {
	var missing []string
	if c.PersonalAccessToken == "" {
		missing = append(missing, "personal_access_token")
	}
	if c.WorkspaceID == "" {
		missing = append(missing, "workspace_id")
	}
	if c.ProjectID == "" {
		missing = append(missing, "project_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidAsanaConfig, strings.Join(missing, ", "))
	}
	return nil
}

// LoadAsana reads the Asana credentials from a JSON file, with each field
// overridable by ROOMUTIL_ASANA_<FIELD> (e.g. ROOMUTIL_ASANA_PROJECT_ID).
// A missing file is tolerated when the environment provides every field.
func LoadAsana(path string) (AsanaConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefixAsana)
	for _, key := range []string{"personal_access_token", "workspace_id", "project_id"} {
		if err := v.BindEnv(key); err != nil {
			return AsanaConfig{}, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return AsanaConfig{}, fmt.Errorf("failed to read asana config %s: %w", path, err)
	}

	var cfg AsanaConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return AsanaConfig{}, fmt.Errorf("failed to decode asana config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return AsanaConfig{}, fmt.Errorf("asana config %s: %w", path, err)
	}

	return cfg, nil
}
