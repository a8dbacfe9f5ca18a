// Package metadata reads and writes the Exif block of JPEG streams.
//
// Only the descriptive record used on export is written: ImageDescription,
// UserComment and the original capture date. Reading additionally decodes
// the common camera tags (Make, Model, LensModel, ISOSpeedRatings,
// FNumber, ExposureTime and FocalLength). GPS data is neither written nor
// decoded.
package metadata
