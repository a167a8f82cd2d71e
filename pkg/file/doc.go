// Package file holds the file-handling building blocks used by upload
// validation: the Upload source type, MIME sniffing and matching, root-confined
// path resolution, and destination storages.
//
// # Uploads
//
// An Upload carries the client-declared metadata of a file together with an
// Open function, so the content can be read several times (sniffing, scanning,
// storing). Use FromFileHeader for multipart uploads, FromBytes in tests, and
// FromPath for files already on disk.
//
// # Path confinement
//
// ResolveWithin joins a path to a root and fails with ErrPathEscapesRoot when
// the cleaned result leaves the root, either lexically ("../") or because a
// symlink inside the root points outside it. ResolveDir additionally checks
// the target is an existing directory and honors a context deadline, since
// filesystem calls on network mounts can block.
//
// # Storage
//
// Storage persists validated content. LocalStorage writes below a base
// directory through a temporary file and rename. S3Storage writes to a bucket
// with the AWS SDK v2.
//
//	store, _ := file.NewLocalStorage("/var/uploads", "/files/")
//	f, err := store.Save(ctx, "avatars/me.png", r, "image/png")
package file
