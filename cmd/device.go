package main

import (
	"context"
	"fmt"

	"github.com/sahilm/fuzzy"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/desertthunder/spt/internal/tasks"
)

// resolveDevice finds the device called name, falling back to the best fuzzy match.
func resolveDevice(name string, devices []models.Device) (models.Device, error) {
	if len(devices) == 0 {
		return models.Device{}, fmt.Errorf("%w: No devices available", shared.ErrNoDevice)
	}
	for _, d := range devices {
		if d.Name == name {
			return d, nil
		}
	}

	names := make([]string, len(devices))
	for i, d := range devices {
		names[i] = d.Name
	}
	if matches := fuzzy.Find(name, names); len(matches) > 0 {
		return devices[matches[0].Index], nil
	}
	return models.Device{}, fmt.Errorf("%w: no device with name '%s'", shared.ErrNoDevice, name)
}

// fetchDevices refreshes the device list without opening the device picker.
func (r *Runner) fetchDevices(ctx context.Context, engine *tasks.Engine) ([]models.Device, error) {
	if err := engine.Execute(ctx, tasks.FetchDevices{KeepRoute: true}); err != nil {
		return nil, err
	}
	return engine.Store().Snapshot().Devices, nil
}

// selectDevice makes the named device the target of later commands and remembers it.
func (r *Runner) selectDevice(ctx context.Context, name string) error {
	devices, err := r.fetchDevices(ctx, r.engine)
	if err != nil {
		return err
	}
	d, err := resolveDevice(name, devices)
	if err != nil {
		return err
	}
	if d.Name != name {
		r.logger.Info("using closest device", "requested", name, "device", d.Name)
	}

	if err := r.engine.Execute(ctx, tasks.SelectDevice{ID: d.ID}); err != nil {
		return err
	}
	r.persistDevice(d.ID)
	return nil
}
