// Package api exposes the vocabulary, review, session and sync services over
// HTTP. Handlers decode and validate JSON requests, call one service method
// and translate its errors into status codes with client-safe messages;
// routing and middleware composition live in cmd/server.
package api
