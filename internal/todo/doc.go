// Package todo holds the task record and the codec that moves it in and out
// of session storage.
//
// The stored value is a single JSON array under one storage key:
//
//	[
//	  {
//	    "id": "0b6f1c1e-7a44-4b55-9a57-2f3e5a1d9c10",
//	    "title": "Buy milk",
//	    "description": "2%",
//	    "completed": false,
//	    "createdAt": "2025-06-01T09:30:00.000Z",
//	    "dueDate": "2025-07-01T00:00:00.000Z"
//	  }
//	]
//
// There is no schema version field. Older or hand-edited payloads are handled
// by tolerant parsing instead:
//
//   - Entries that are not objects are dropped.
//   - id, title and description are coerced to text. An entry without a
//     usable id or title is dropped; the rest of the array is kept.
//   - completed is coerced to a boolean.
//   - createdAt that does not parse defaults to the load time.
//   - dueDate that is absent or does not parse leaves the task without a
//     due date.
//
// # Timestamps
//
// The codec writes timestamps in UTC with millisecond precision
// ("2006-01-02T15:04:05.000Z07:00"). On read it accepts RFC 3339 with or
// without fractional seconds, date-only values and zone-less local times.
//
// # Overdue
//
// A task is overdue when it is not completed and its due date falls on a
// calendar day strictly before today. Time of day is ignored.
package todo
