// Package board implements the planning board: kanban columns of tasks,
// tags with stable colors, and a monthly calendar view of due dates. Moves
// are applied locally first and rolled back if the backend rejects them.
package board
