// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the color palette for sortbench's terminal output.
//
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
// Each sort engine has an accent color (see EngineColor) used consistently
// by tables, progress bars and history listings.
package styles
