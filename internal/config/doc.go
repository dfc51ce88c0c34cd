// Package config loads the static inputs of a report run: the room list
// (rooms.json) and the task-tracker credentials (asana_config.json).
//
// Files are read through viper so that the Asana credentials can be
// overridden from the environment (ROOMUTIL_ASANA_*), which in turn may be
// populated from a .env file at startup.
package config
