// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sen5x

import (
	"math"
	"time"

	"periph.io/x/conn/v3/physic"
)

const (
	// One count of the temperature compensation offset.
	offsetStep = physic.Celsius / 200
	slopeScale = 10000

	// StateSize is the size of the VOC algorithm state in bytes.
	StateSize = 8
)

// TempCompensation configures the compensation the device applies to its
// temperature reading for self heating of the enclosure.
//
// The compensated temperature is T - (Slope*T + Offset), with the correction
// applied gradually with the time constant TimeConstant. Refer to the
// application note "SEN5x Temperature Compensation Instruction".
type TempCompensation struct {
	// Offset is a temperature difference, resolution 1/200 °C.
	Offset physic.Temperature
	// Slope has a resolution of 1/10000.
	Slope float64
	// TimeConstant is truncated to whole seconds. 0 applies the correction
	// immediately.
	TimeConstant time.Duration
}

// TempCompensation reads the temperature compensation parameters.
func (d *Dev) TempCompensation() (TempCompensation, error) {
	words, err := d.readWords(cmdGetTempCompensation)
	if err != nil {
		return TempCompensation{}, err
	}
	return TempCompensation{
		Offset:       physic.Temperature(int16(words[0])) * offsetStep,
		Slope:        float64(int16(words[1])) / slopeScale,
		TimeConstant: time.Duration(words[2]) * time.Second,
	}, nil
}

// SetTempCompensation writes the temperature compensation parameters. They
// are volatile and revert to the defaults on reset.
func (d *Dev) SetTempCompensation(tc TempCompensation) error {
	offset := math.Round(float64(tc.Offset) / float64(offsetStep))
	if !inInt16(offset) {
		return &ParameterError{Param: "temperature offset", Value: tc.Offset}
	}
	slope := math.Round(tc.Slope * slopeScale)
	if !inInt16(slope) {
		return &ParameterError{Param: "temperature slope", Value: tc.Slope}
	}
	if tc.TimeConstant < 0 || tc.TimeConstant/time.Second > math.MaxUint16 {
		return &ParameterError{Param: "time constant", Value: tc.TimeConstant}
	}
	return d.writeWords(cmdSetTempCompensation,
		uint16(int16(offset)),
		uint16(int16(slope)),
		uint16(tc.TimeConstant/time.Second))
}

// inInt16 reports whether v fits the symmetric range the device accepts.
// NaN is rejected.
func inInt16(v float64) bool {
	return v >= -math.MaxInt16 && v <= math.MaxInt16
}

// WarmStart reads the warm start parameter. 0 is a cold start, 65535 is
// the warmest start.
func (d *Dev) WarmStart() (uint16, error) {
	words, err := d.readWords(cmdGetWarmStart)
	if err != nil {
		return 0, err
	}
	return words[0], nil
}

// SetWarmStart sets the warm start parameter, which adjusts the
// temperature compensation at the start of a measurement. Every uint16
// value is accepted.
func (d *Dev) SetWarmStart(param uint16) error {
	return d.writeWords(cmdSetWarmStart, param)
}

// TuningParams are the parameters of the VOC and NOx index algorithms.
// Refer to the application note "SGP40/SGP41 Engineering Guidelines" for
// their effect.
type TuningParams struct {
	IndexOffset int16
	// In hours.
	LearningTimeOffset int16
	// In hours.
	LearningTimeGain int16
	// In minutes.
	GatingMaxDuration int16
	StdInitial        int16
	GainFactor        int16
}

func (p *TuningParams) words() []uint16 {
	return []uint16{
		uint16(p.IndexOffset),
		uint16(p.LearningTimeOffset),
		uint16(p.LearningTimeGain),
		uint16(p.GatingMaxDuration),
		uint16(p.StdInitial),
		uint16(p.GainFactor),
	}
}

func tuningFromWords(w []uint16) TuningParams {
	return TuningParams{
		IndexOffset:        int16(w[0]),
		LearningTimeOffset: int16(w[1]),
		LearningTimeGain:   int16(w[2]),
		GatingMaxDuration:  int16(w[3]),
		StdInitial:         int16(w[4]),
		GainFactor:         int16(w[5]),
	}
}

type paramRange struct {
	name     string
	min, max int16
}

// Accepted ranges, in TuningParams field order.
var vocTuningRanges = [6]paramRange{
	{"index offset", 1, 250},
	{"learning time offset", 1, 1000},
	{"learning time gain", 1, 1000},
	{"gating max duration", 0, 3000},
	{"std initial", 10, 5000},
	{"gain factor", 1, 1000},
}

var noxTuningRanges = [6]paramRange{
	{"index offset", 1, 250},
	{"learning time offset", 1, 1000},
	{"learning time gain", 12, 12},
	{"gating max duration", 0, 3000},
	{"std initial", 50, 50},
	{"gain factor", 1, 1000},
}

func (p *TuningParams) validate(prefix string, ranges *[6]paramRange) error {
	for ix, w := range p.words() {
		v := int16(w)
		if v < ranges[ix].min || v > ranges[ix].max {
			return &ParameterError{Param: prefix + " " + ranges[ix].name, Value: v}
		}
	}
	return nil
}

// VOCTuning reads the VOC algorithm tuning parameters. The device must be
// idle.
func (d *Dev) VOCTuning() (TuningParams, error) {
	words, err := d.readWords(cmdGetVOCTuning)
	if err != nil {
		return TuningParams{}, err
	}
	return tuningFromWords(words), nil
}

// SetVOCTuning writes the VOC algorithm tuning parameters. The device must
// be idle.
func (d *Dev) SetVOCTuning(p TuningParams) error {
	if err := p.validate("voc", &vocTuningRanges); err != nil {
		return err
	}
	return d.writeWords(cmdSetVOCTuning, p.words()...)
}

// NOxTuning reads the NOx algorithm tuning parameters. The device must be
// idle.
func (d *Dev) NOxTuning() (TuningParams, error) {
	words, err := d.readWords(cmdGetNOxTuning)
	if err != nil {
		return TuningParams{}, err
	}
	return tuningFromWords(words), nil
}

// SetNOxTuning writes the NOx algorithm tuning parameters. The device must
// be idle. LearningTimeGain must be 12 and StdInitial must be 50.
func (d *Dev) SetNOxTuning(p TuningParams) error {
	if err := p.validate("nox", &noxTuningRanges); err != nil {
		return err
	}
	return d.writeWords(cmdSetNOxTuning, p.words()...)
}

// RHTMode selects how fast the humidity and temperature compensation
// reacts to changes.
type RHTMode uint16

const (
	RHTLow    RHTMode = 0
	RHTHigh   RHTMode = 1
	RHTMedium RHTMode = 2
)

func (m RHTMode) String() string {
	switch m {
	case RHTLow:
		return "low"
	case RHTHigh:
		return "high"
	case RHTMedium:
		return "medium"
	default:
		return "invalid"
	}
}

// RHTMode reads the humidity/temperature acceleration mode.
func (d *Dev) RHTMode() (RHTMode, error) {
	words, err := d.readWords(cmdGetRHTMode)
	if err != nil {
		return 0, err
	}
	return RHTMode(words[0]), nil
}

// SetRHTMode writes the humidity/temperature acceleration mode.
func (d *Dev) SetRHTMode(m RHTMode) error {
	if m > RHTMedium {
		return &ParameterError{Param: "rht acceleration mode", Value: uint16(m)}
	}
	return d.writeWords(cmdSetRHTMode, uint16(m))
}

// VOCAlgorithmState reads the VOC algorithm state. The contents are opaque;
// the device learns it over time and loses it on reset.
func (d *Dev) VOCAlgorithmState() ([]byte, error) {
	words, err := d.readWords(cmdGetVOCState)
	if err != nil {
		return nil, err
	}
	state := make([]byte, 0, StateSize)
	for _, w := range words {
		state = append(state, byte(w>>8), byte(w))
	}
	return state, nil
}

// SetVOCAlgorithmState writes a state previously read with
// VOCAlgorithmState.
func (d *Dev) SetVOCAlgorithmState(state []byte) error {
	if len(state) != StateSize {
		return &ParameterError{Param: "voc algorithm state length", Value: len(state)}
	}
	var w [StateSize / 2]uint16
	for ix := range w {
		w[ix] = uint16(state[ix*2])<<8 | uint16(state[ix*2+1])
	}
	return d.writeWords(cmdSetVOCState, w[:]...)
}

// AutoCleaningInterval reads the fan auto cleaning interval. 0 means auto
// cleaning is disabled.
func (d *Dev) AutoCleaningInterval() (time.Duration, error) {
	words, err := d.readWords(cmdGetAutoCleaning)
	if err != nil {
		return 0, err
	}
	return time.Duration(uint32(words[0])<<16|uint32(words[1])) * time.Second, nil
}

// SetAutoCleaningInterval sets the fan auto cleaning interval, truncated to
// whole seconds. The default is one week. 0 disables auto cleaning.
func (d *Dev) SetAutoCleaningInterval(interval time.Duration) error {
	secs := interval / time.Second
	if interval < 0 || secs > math.MaxUint32 {
		return &ParameterError{Param: "auto cleaning interval", Value: interval}
	}
	return d.writeWords(cmdSetAutoCleaning, uint16(secs>>16), uint16(secs))
}
