// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat implements the Bubble Tea chat screen.

The Model renders the session transcript in a viewport, owns the composer
text input and forwards actions to a pipeline.Controller. Network calls run
in tea.Cmds; their results come back as AskDoneMsg and TranscribeDoneMsg and
are settled on the event loop.

The screen re-renders when the session store or the recorder signals a
change. Both are watched with a command that blocks on the change channel and
is re-issued after each signal.

# Keys

	enter   send (disabled while busy or empty)
	ctrl+r  start or stop recording
	ctrl+d  discard the recording
	ctrl+l  clear the chat
	ctrl+s  save the recording
	ctrl+y  copy the last answer
	esc     back to home
	ctrl+c  quit
*/
package chat
