package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/formcalc/internal/ctxlog"
	"github.com/vk/formcalc/internal/formctl"
	"github.com/vk/formcalc/internal/relay"
)

// Run builds the form, wires every calculation, replays the configured
// interactions and prints the calculated fields as sorted name=value lines.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	publisher, err := a.newPublisher(ctx)
	if err != nil {
		return err
	}

	form := buildForm(a.model)
	ctl := formctl.New(ctx, form,
		formctl.WithName(a.model.Name),
		formctl.WithEvaluator(a.evaluator),
		formctl.WithPublisher(publisher),
	)
	defer ctl.Dispose()

	for _, c := range a.model.Calculations {
		spec, err := c.Spec()
		if err != nil {
			return err
		}
		if _, err := ctl.Add(c.Output, spec); err != nil {
			return fmt.Errorf("failed to wire calculated field %q: %w", c.Output, err)
		}
	}
	a.logger.Info("Calculated fields wired.", "form", a.model.Name, "count", len(a.model.Calculations))

	for _, in := range a.config.Interactions {
		if err := apply(form, in); err != nil {
			return err
		}
		a.logger.Debug("Interaction applied.", "field", in.Name, "value", in.Value, "dirty", ctl.IsDirty())
	}

	values := ctl.Values()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := fmt.Fprintf(a.outW, "%s=%s\n", name, values[name]); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) newPublisher(ctx context.Context) (relay.Publisher, error) {
	if a.config.RelayURL == "" {
		return relay.NewLog(a.logger), nil
	}
	var opts []relay.SocketIOOption
	if a.config.RelayInsecure {
		a.logger.Warn("Skipping TLS certificate verification for the relay.")
		opts = append(opts, relay.WithInsecureSkipVerify())
	}
	p, err := relay.NewSocketIO(ctx, a.config.RelayURL, a.config.RelayNamespace, a.config.RelayEvent, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect relay: %w", err)
	}
	return p, nil
}
