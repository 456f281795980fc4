// Package manifest builds the version.json descriptor embedded in a packaged
// source directory.
//
// # Manifest Format
//
// The manifest is a JSON object with keys in fixed order:
//
//	{
//	    "name": "hello world",
//	    "version": "1.2.3",
//	    "files": [
//	        "run.py",
//	        "deploy.sh"
//	    ]
//	}
//
// Files lists the immediate children of the source directory whose extension
// exactly matches one of the configured extensions, in directory-listing order.
//
// # Usage
//
//	b := manifest.NewBuilder(manifest.BuilderOptions{Extensions: []string{".py", ".js", ".sh"}})
//	m, err := b.Build(sourceDir, "1.2.3")
//	if err != nil {
//	    return err
//	}
//	path, err := b.Write(sourceDir, m)
package manifest
