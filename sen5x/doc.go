// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sen5x provides a driver for the Sensirion SEN50, SEN54 and SEN55
// environmental sensor modules. Depending on the variant they measure
// particulate matter (PM1.0, PM2.5, PM4.0, PM10), humidity, temperature and
// the VOC and NOx indexes.
//
// The device has two modes. It starts in idle mode; StartMeasurement puts
// it in measuring mode and StopMeasurement or Reset return it to idle. Some
// operations are only accepted in one mode. The driver never caches the
// mode: it reads the data ready flag from the device whenever it needs it.
//
// Start and Stop, or Run, wrap the usual startup sequence, including the
// restore of a VOC algorithm state saved with BackupVOCAlgorithmState.
//
// # Datasheet
//
// https://sensirion.com/media/documents/6791EFA0/62A1F68F/Sensirion_Datasheet_Environmental_Node_SEN5x.pdf
package sen5x
