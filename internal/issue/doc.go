// SPDX-License-Identifier: MPL-2.0

// Package issue turns low-level failures into user-facing guidance.
// ActionableError carries operation/resource context and fix suggestions;
// the issue catalog maps well-known failure classes to rendered Markdown
// help pages.
package issue
