// Package format describes file formats and the handlers that convert
// between them.
//
// A [Descriptor] identifies a format by MIME type and carries its coarse
// categories (image, video, audio, text, ...), whether it is lossless and
// whether its handler can read it ([Descriptor.From]) or write it
// ([Descriptor.To]). A [Handler] advertises an ordered list of descriptors;
// the position of a descriptor in that list expresses the handler's
// preference and feeds the route cost model.
//
// Handler identity is a [HandlerName], normalized once on construction so
// every comparison is case-insensitive.
//
// # Registry
//
// A [Registry] keeps handlers in registration order. [Registry.Collect]
// initializes each handler and gathers its formats. A handler whose Init
// fails contributes no formats; collection never aborts because of it.
package format
