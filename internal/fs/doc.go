// Package fs abstracts the file operations behind local blob writers so
// tests can inject I/O failures.
//
// Production code uses [Default], which is [LocalFS]. Tests wrap it in a
// [FaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("c.history", fs.Fault{FailAfterBytes: 1024})
//	store := blobstore.NewLocalStore(dir, blobstore.WithFileSystem(ffs))
//
// Operations take no context.Context: local file calls are not
// interruptible at the syscall level.
package fs
