// Package observability exposes Prometheus collectors for desks and the
// command surface.
//
// Create one Metrics value per registry, then attach per-desk observers:
//
//	metrics, err := observability.New(prometheus.DefaultRegisterer)
//	if err != nil {
//		log.Fatal(err)
//	}
//	desk, _ := patchbay.New(8, 4, patchbay.WithName("foh"))
//	sub := desk.OnChange(metrics.Observer(desk))
//	defer sub.Close()
//
// Command latencies plug into the processor directly:
//
//	proc := command.NewProcessor(command.WithLatencyObserver(metrics.ObserveCommand))
package observability
