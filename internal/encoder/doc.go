// Package encoder renders an event log into the supported file formats.
//
// # Formats
//
//   - XES: the XML interchange format read by process mining tools. This is
//     the default.
//   - JSON: the same document as nested objects with typed scalars.
//   - Avro: an Object Container File with one record per event.
//   - Parquet: a columnar file with one row per event attribute.
//
// Avro and Parquet files carry the log header (extensions, classifiers and
// log attributes) as JSON in the file metadata under the "xes.log" key.
//
// # Encoder Factory
//
//	factory := encoder.NewFactory(event.FormatXES, "gzip")
//	enc, err := factory.CreateEncoder()
//	if err != nil {
//	    return err
//	}
//	stats, err := enc.Encode(w, log)
//
// # Compression
//
//	XES, JSON: "none", "gzip", "zstd" (whole stream)
//	Parquet:   "uncompressed", "snappy", "gzip", "lz4", "zstd" (page codec)
//	Avro:      "null", "deflate", "snappy" (block codec), "gzip", "zstd" (whole stream)
//
// Stream compression appends ".gz" or ".zst" to FileExtension.
//
// Encoders hold no per-call state and are safe for concurrent use.
package encoder
