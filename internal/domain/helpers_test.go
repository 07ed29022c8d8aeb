package domain

import "time"

var testTime = time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)
