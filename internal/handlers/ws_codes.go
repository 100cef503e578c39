// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the scoring channel. These provide
// more specific reasons for closure than standard codes.
const (
	BadSubprotocolError   = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError = 3001 // Provided auth token was invalid or expired.
	InvalidMatchIDError   = 3002 // Match ID in the WS URL does not resolve to a match.
)
