package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/san-kum/oscsim/internal/dynamo"
)

const (
	ParamsSheet = "Parameters"
	EnergySheet = "Energy"
)

// SaveXLSX writes a workbook with a parameter sheet and an energy sheet.
func SaveXLSX(path string, meta Metadata, s dynamo.Series) error {
	f, err := buildWorkbook(meta, s)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func WriteXLSX(w io.Writer, meta Metadata, s dynamo.Series) error {
	f, err := buildWorkbook(meta, s)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

func buildWorkbook(meta Metadata, s dynamo.Series) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", ParamsSheet); err != nil {
		f.Close()
		return nil, err
	}

	p := meta.Params
	rows := [][]interface{}{
		{"Parameter", "Value", "Unit"},
		{"Run", meta.ID, ""},
		{"Mass", p.Mass, "kg"},
		{"Stiffness", p.Stiffness, "N/m"},
		{"Damping", p.Damping, "kg/s"},
		{"Initial displacement", p.Displacement, "m"},
		{"Initial velocity", p.Velocity, "m/s"},
		{"Steps", p.Steps, ""},
		{"Time step", p.Dt, "s"},
		{"Regime", string(meta.Regime), ""},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(ParamsSheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}

	if _, err := f.NewSheet(EnergySheet); err != nil {
		f.Close()
		return nil, err
	}

	header := []interface{}{TimeLabel, "Kinetic (J)", "Potential (J)", "Total (J)"}
	if err := f.SetSheetRow(EnergySheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}

	for i := 0; i < s.Len(); i++ {
		row := []interface{}{
			cellValue(s.Times[i]),
			cellValue(s.Kinetic[i]),
			cellValue(s.Potential[i]),
			cellValue(s.Total[i]),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(EnergySheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("export: energy row %d: %w", i, err)
		}
	}

	return f, nil
}

// cellValue keeps non-finite values readable; Excel has no NaN number.
func cellValue(v float64) interface{} {
	if !isFinite(v) {
		return formatFloat(v)
	}
	return v
}
