// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Felt - Primary accent, brand, headers
var Felt = lipgloss.AdaptiveColor{Light: "#166534", Dark: "#4ADE80"}

// FeltDeep - Darker felt for backgrounds
var FeltDeep = lipgloss.AdaptiveColor{Light: "#14532D", Dark: "#052E16"}

// Gold - Highlights, keys, recording timer
var Gold = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}

// Chip - Errors and the recording indicator
var Chip = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}

// Sky - Informational notices
var Sky = lipgloss.AdaptiveColor{Light: "#0369A1", Dark: "#7DD3FC"}

// =============================================================================
// SURFACE AND TEXT
// =============================================================================

var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F4F4F5", Dark: "#18181B"}
var Overlay = lipgloss.AdaptiveColor{Light: "#E4E4E7", Dark: "#3F3F46"}

var TextPrimary = lipgloss.AdaptiveColor{Light: "#18181B", Dark: "#E4E4E7"}
var TextSecondary = lipgloss.AdaptiveColor{Light: "#52525B", Dark: "#A1A1AA"}
var TextMuted = lipgloss.AdaptiveColor{Light: "#A1A1AA", Dark: "#71717A"}

// =============================================================================
// MESSAGE BUBBLES
// =============================================================================

var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#1E3A8A", Dark: "#DBEAFE"}
var UserBubbleBorder = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#60A5FA"}

var AssistantBubbleFg = lipgloss.AdaptiveColor{Light: "#14532D", Dark: "#DCFCE7"}
var AssistantBubbleBorder = lipgloss.AdaptiveColor{Light: "#22C55E", Dark: "#4ADE80"}

var FailedBubbleBorder = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}
