// Package api provides the inbound HTTP listener for Indigo Bridge.
//
// Its primary job is the push notification endpoint: the Indigo server (via
// its notification plugin) calls GET /devices/{id} whenever a device changes,
// and the bridge reconciles that device's state into the accessory framework.
// The listener also serves a health check, a JSON metrics snapshot, and a
// WebSocket stream of mirrored trait updates.
//
// The server follows the usual component lifecycle:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// The endpoints carry no authentication. The push protocol predates any auth
// scheme, so the listener binds to loopback unless configured otherwise.
package api
