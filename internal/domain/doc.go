// Package domain models weather disruption context for airline operations.
//
// # Context Resolution
//
// A subject (IATA airport code) is resolved into a ContextResult: a severity
// level, an expected disruption duration, and a cascading delay risk. The
// resolver consults a live weather provider when one is available and falls
// back to a static rule table on any lookup failure. The fallback branch is a
// normal outcome, not an error: Resolve never fails.
//
// # Severity Classification
//
// Live readings are classified by an ordered rule cascade, first match wins.
// HIGH rules are checked before MEDIUM rules because the categories overlap
// (a thunderstorm with 9 m/s wind must classify HIGH, not MEDIUM):
//
//	HIGH:   thunderstorm/extreme condition | heavy/severe description |
//	        precipitation >= 7.6 mm/h | wind > 15 m/s | visibility < 1000 m
//	MEDIUM: rain/snow/drizzle condition | measurable precipitation |
//	        wind > 8 m/s | visibility < 5000 m
//	LOW:    everything else
//
// The wind and visibility thresholds follow operational guidance for strong
// wind (> 15 m/s) and low instrument visibility (< 1000 m); 7.6 mm/h is the
// standard heavy-rain rate boundary.
//
// # Cascading Risk
//
// Risk escalates one level above severity when the subject is a high-traffic
// hub, capped at HIGH. Disruption at a hub propagates to connecting flights,
// so hub status raises risk even when local severity is LOW.
//
// # Fallback Table
//
// When no live reading is available the result is derived from subject
// identity alone: subjects in the elevated-severity set (monsoon- and
// fog-prone airports) map to {HIGH, 4.0h, HIGH}; everything else maps to
// {MEDIUM, 2.0h, MEDIUM}. Coarser than the live table, but always available.
package domain
