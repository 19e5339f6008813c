package usage

import "errors"

var ErrNegativeCount = errors.New("usage: backend returned a negative count")
