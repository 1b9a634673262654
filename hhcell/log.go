// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hhcell

import (
	"io"
	"strconv"

	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
)

// LogPrec is the precision for saving float values in logs
const LogPrec = 6

// Log returns the recorded traces of the last run as a table with
// Time, Soma and Dend columns. It is empty without recordings.
func (cl *Cell) Log() *etable.Table {
	dt := &etable.Table{}
	dt.SetMetaData("name", cl.Soma.Name+"Voltage")
	dt.SetMetaData("desc", "Membrane potential at soma(0.5) and dend(0.5)")
	dt.SetMetaData("read-only", "true")
	dt.SetMetaData("precision", strconv.Itoa(LogPrec))

	tv, sv, dv := values(cl.T), values(cl.SomaV), values(cl.DendV)
	nt := min(len(tv), len(sv), len(dv))
	sch := etable.Schema{
		{"Time", etensor.FLOAT64, nil, nil},
		{"Soma", etensor.FLOAT64, nil, nil},
		{"Dend", etensor.FLOAT64, nil, nil},
	}
	dt.SetFromSchema(sch, nt)
	for row := 0; row < nt; row++ {
		dt.SetCellFloat("Time", row, tv[row])
		dt.SetCellFloat("Soma", row, sv[row])
		dt.SetCellFloat("Dend", row, dv[row])
	}
	return dt
}

// WriteCSV writes Log as comma-separated values with a header row.
func (cl *Cell) WriteCSV(w io.Writer) error {
	return cl.Log().WriteCSV(w, etable.Comma, etable.Headers)
}
