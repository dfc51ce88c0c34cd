// Package utilization computes per-room occupancy from calendar events.
//
// For each room the aggregator counts the meetings held in the reporting
// window and the people who attended them, and relates the attendance to
// the room's capacity over those meetings:
//
//	utilization = 100 * attendees / (meetings * seats)
//
// Values above 100 mean the room was regularly booked beyond its seats.
package utilization
