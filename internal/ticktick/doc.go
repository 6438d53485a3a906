// Package ticktick provides a client for the TickTick Open API
// (https://api.ticktick.com/open/v1), covering project and task CRUD plus
// task completion.
//
// Authentication uses a bearer access token obtained through TickTick's
// OAuth authorization-code flow; the client itself never performs the
// exchange. Raw API responses are converted into flattened summary types
// before being returned to callers.
package ticktick
