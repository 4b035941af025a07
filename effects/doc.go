// Package effects is the small effect runtime the contextmap handlers run on.
//
// A handler is registered in a context.Context under an EffectEnum with one
// of the WithXxxEffectHandler functions, and code holding that context
// performs effects against it without knowing how it is served:
//
//   - PerformResumableEffect sends a payload and waits for the handler's
//     result (request/response).
//   - FireAndForgetEffect queues a payload and returns at once (logging,
//     notifications).
//
// Handlers run on their own worker goroutines. Partitionable handlers route
// each payload by the xxhash of its PartitionKey(), so every payload sharing
// a key is handled by the same worker, in order. Package effects/index relies
// on this to give each ContextMap a single writer.
//
// Every WithXxxEffectHandler returns a teardown function. Calling it stops
// the workers, waits for the payload in progress, runs the optional
// teardown callback and returns the parent context.
//
// Example:
//
//	ctx, endOfLog := log.WithZapEffectHandler(ctx, 16, logger)
//	defer endOfLog()
//
//	ctx, endOfIndex := index.WithEffectHandler(ctx, effects.NewEffectScopeConfig(16, 4),
//	    func(namespace string) *contextmap.ContextMap[string, int64, string] {
//	        return contextmap.New[string, int64, string](
//	            contextmap.WithLogger(logger.With(zap.String("namespace", namespace))))
//	    },
//	)
//	defer endOfIndex()
//
//	outcome, err := index.EffectInsert(ctx, "tenant-a", int64(1), "primary", "10.0.0.1")
package effects
