// Package asana is a minimal client for the Asana REST API that creates
// tasks, and a report publisher built on it.
package asana
