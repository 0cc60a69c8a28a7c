// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sen5x

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"periph.io/x/conn/v3/physic"
)

// Raw values the device uses for a channel it has no data for. The datasheet
// documents 0xffff; 0x7fff is what the devices actually return for the
// signed channels.
const (
	unknownSigned   uint16 = 0x7fff
	unknownUnsigned uint16 = 0xffff
)

// Scale factors of the measured values register.
const (
	pmScale          = 10
	humidityScale    = 100
	temperatureScale = 200
	indexScale       = 10
)

// Value is one channel of a Reading.
type Value struct {
	V float64
	// Valid is false when the device reported the channel as unknown, for
	// example the gas indexes of an SEN50 or any channel during warm up.
	Valid bool
}

func (v Value) String() string {
	if !v.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(v.V, 'f', -1, 64)
}

// Reading holds one set of measured values.
//
// PM values are mass concentrations in µg/m³, Humidity is in %RH and the
// indexes are unitless 1..500. Temperature is in °C unless Imperial is set,
// in which case it is in °F.
type Reading struct {
	PM1_0       Value
	PM2_5       Value
	PM4_0       Value
	PM10_0      Value
	Humidity    Value
	Temperature Value
	VOCIndex    Value
	NOxIndex    Value
	Imperial    bool
}

func (r *Reading) String() string {
	unit := "°C"
	if r.Imperial {
		unit = "°F"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "PM1.0: %s µg/m³ PM2.5: %s µg/m³ PM4.0: %s µg/m³ PM10.0: %s µg/m³ ", r.PM1_0, r.PM2_5, r.PM4_0, r.PM10_0)
	fmt.Fprintf(&sb, "Humidity: %s %%rH Temperature: %s %s VOC: %s NOx: %s", r.Humidity, r.Temperature, unit, r.VOCIndex, r.NOxIndex)
	return sb.String()
}

// Env copies temperature and humidity into e. Unknown channels are set to 0.
// Pressure is not measured and is always 0.
func (r *Reading) Env(e *physic.Env) {
	e.Temperature = 0
	e.Humidity = 0
	e.Pressure = 0
	if r.Temperature.Valid {
		c := r.Temperature.V
		if r.Imperial {
			c = (c - 32) * 5 / 9
		}
		e.Temperature = physic.ZeroCelsius + physic.Temperature(c*float64(physic.Celsius))
	}
	if r.Humidity.Valid {
		e.Humidity = physic.RelativeHumidity(r.Humidity.V * float64(physic.PercentRH))
	}
}

// MeasuredValuesRaw returns the latest measurement at full device
// resolution.
func (d *Dev) MeasuredValuesRaw() (Reading, error) {
	words, err := d.readWords(cmdReadMeasuredValues)
	if err != nil {
		return Reading{}, err
	}
	return decodeReading(words), nil
}

// MeasuredValues returns the latest measurement rounded to the accuracy the
// datasheet specifies for each channel. This hides variation between
// readings that is below the sensor tolerance.
func (d *Dev) MeasuredValues() (Reading, error) {
	r, err := d.MeasuredValuesRaw()
	if err != nil {
		return r, err
	}
	return roundReading(r, false), nil
}

// MeasuredValuesImperial is MeasuredValues with the temperature in °F,
// rounded to the nearest degree.
func (d *Dev) MeasuredValuesImperial() (Reading, error) {
	r, err := d.MeasuredValuesRaw()
	if err != nil {
		return r, err
	}
	return roundReading(r, true), nil
}

// Sense reads the latest temperature and humidity into e.
func (d *Dev) Sense(e *physic.Env) error {
	r, err := d.MeasuredValuesRaw()
	if err != nil {
		e.Temperature = 0
		e.Humidity = 0
		e.Pressure = 0
		return err
	}
	r.Env(e)
	return nil
}

// Precision returns the resolution of the temperature and humidity
// channels.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = physic.Kelvin / temperatureScale
	e.Humidity = physic.PercentRH / humidityScale
	e.Pressure = 0
}

func decodeReading(words []uint16) Reading {
	return Reading{
		PM1_0:       scaleUnsigned(words[0], pmScale),
		PM2_5:       scaleUnsigned(words[1], pmScale),
		PM4_0:       scaleUnsigned(words[2], pmScale),
		PM10_0:      scaleUnsigned(words[3], pmScale),
		Humidity:    scaleSigned(words[4], humidityScale),
		Temperature: scaleSigned(words[5], temperatureScale),
		VOCIndex:    scaleSigned(words[6], indexScale),
		NOxIndex:    scaleSigned(words[7], indexScale),
	}
}

func isUnknown(w uint16) bool {
	return w == unknownSigned || w == unknownUnsigned
}

func scaleUnsigned(w uint16, factor float64) Value {
	if isUnknown(w) {
		return Value{}
	}
	return Value{V: float64(w) / factor, Valid: true}
}

func scaleSigned(w uint16, factor float64) Value {
	if isUnknown(w) {
		return Value{}
	}
	return Value{V: float64(int16(w)) / factor, Valid: true}
}

// roundTo rounds v to the nearest multiple of n. Halves go to the even
// multiple.
func roundTo(v, n float64) float64 {
	return math.RoundToEven(v/n) * n
}

// roundPM rounds PM1.0 and PM2.5, whose tolerance is ±5 µg/m³ below
// 100 µg/m³ and ±10% above.
func roundPM(v Value) Value {
	if !v.Valid {
		return v
	}
	if v.V < 100 {
		return Value{V: roundTo(v.V, 5), Valid: true}
	}
	return Value{V: roundTo(v.V, 10), Valid: true}
}

func roundValue(v Value, n float64) Value {
	if !v.Valid {
		return v
	}
	return Value{V: roundTo(v.V, n), Valid: true}
}

func celsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

func roundReading(r Reading, imperial bool) Reading {
	out := Reading{
		PM1_0:    roundPM(r.PM1_0),
		PM2_5:    roundPM(r.PM2_5),
		PM4_0:    roundValue(r.PM4_0, 25),
		PM10_0:   roundValue(r.PM10_0, 25),
		Humidity: roundValue(r.Humidity, 5),
		VOCIndex: roundValue(r.VOCIndex, 1),
		NOxIndex: roundValue(r.NOxIndex, 1),
		Imperial: imperial,
	}
	switch {
	case !r.Temperature.Valid:
	case imperial:
		out.Temperature = Value{V: roundTo(celsiusToFahrenheit(r.Temperature.V), 1), Valid: true}
	default:
		out.Temperature = roundValue(r.Temperature, 0.5)
	}
	return out
}
