package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teemow/roomutil/internal/config"
)

// roomEntry is the YAML shape printed by the rooms command.
type roomEntry struct {
	Name       string `yaml:"name"`
	CalendarID string `yaml:"calendar_id"`
	Seats      int    `yaml:"seats"`
}

func newRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "Validate and print the configured rooms",
		Long: `Load the rooms file, validate every room and print the result as YAML.
Exits non-zero if any room is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rooms, err := config.LoadRooms(global.paths.Rooms)
			if err != nil {
				return err
			}

			out, err := marshalRooms(rooms)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func marshalRooms(rooms []config.Room) ([]byte, error) {
	entries := make([]roomEntry, 0, len(rooms))
	for _, r := range rooms {
		entries = append(entries, roomEntry{Name: r.Name, CalendarID: r.URL, Seats: r.Seats})
	}

	out, err := yaml.Marshal(map[string][]roomEntry{"rooms": entries})
	if err != nil {
		return nil, fmt.Errorf("failed to encode rooms: %w", err)
	}
	return out, nil
}
