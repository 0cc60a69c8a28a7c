// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package airquality is a container for the Sensirion SEN5x air quality
// sensor driver and its tools.
//
// The driver lives in sen5x, the VOC algorithm state stores in statestore,
// a terminal gauge in airbar and the command line tool in cmd/sen5x.
package airquality
