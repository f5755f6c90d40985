// Package scraper provides the authenticated client for the buying-group
// site and turns dashboard HTML into listing snapshots.
//
// Site surfaces:
//   - GET  /login        login form with the session CSRF token
//   - POST /login        credential submit, redirects to / on success
//   - GET  /             dashboard with the deal cards
//   - POST /commitments  commitment form submit
//
// The site renders server-side HTML; there is no JSON API. Parsing keys
// off the dashboard's card markup and breaks if the site redesigns it.
package scraper
