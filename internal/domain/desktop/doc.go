/*
Package desktop is the window manager's system store.

The Store is the only writer of window existence, z-order, focus and
fullscreen. It is constructed by the composition root and injected into its
consumers:

	store := desktop.NewStore(window.DefaultRegistry(),
		desktop.WithPreferences(persist.NewPreferenceStore(storage, logger)),
		desktop.WithLogger(logger),
	)

	_ = store.LaunchApp(window.AppTerminal, nil)
	store.MinimizeWindow(window.AppTerminal)

Actions that name a window missing from the stack are silent no-ops: they come
from UI handlers racing a close, not from defects. Launching an id with no
registry entry returns window.ErrUnregisteredApp.

Only wallpaper and dock configuration are persisted. Window state always
starts empty (or from WithInitialWindows).

Readers either take a Snapshot or Subscribe with a selector:

	stop := desktop.Subscribe(store, desktop.SelectVisible, desktop.ShallowEqualWindows,
		func(ws []window.Instance) { render(ws) })
	defer stop()
*/
package desktop
