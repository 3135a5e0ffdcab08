// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

// Package httpapi is the REST and server-sent-events transport of Circle.
//
// Every response is JSON with a "status" message and the HTTP "code". Errors
// are mapped from their errutil kind; internal errors are logged and reported
// to the client with a fixed message.
package httpapi
