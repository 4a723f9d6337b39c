package memory

import "time"

// timeNow is a package-level variable for testability.
// Tests can replace this to pin record timestamps.
var timeNow = time.Now
