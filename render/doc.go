// Package render provides built-in renderers for the conversion pipeline.
//
// Real installations plug in an external rasterizer for PDF and office
// formats; the renderers here cover the inputs the toolchain can rasterize
// without one. TextRenderer paginates plain text onto fixed-size image
// pages and encodes them as PNG or JPEG.
package render
