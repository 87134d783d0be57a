package python

// resultMarker prefixes the probe's answer on stdout. Output printed by
// probed modules on import is skipped by scanning for the last marker.
const resultMarker = "__ENVCHECK__"

// prelude defines emit(), which writes the result on a line of its own even
// when an imported module left stdout mid-line.
const prelude = `import importlib, json, sys

def emit(result):
    sys.stdout.write("\n` + resultMarker + `" + json.dumps(result) + "\n")
    sys.stdout.flush()
`

const runtimeScript = prelude + `
emit({"ok": True, "version_info": list(sys.version_info[:3])})`

const importScript = prelude + `
name = sys.argv[1]
try:
    mod = importlib.import_module(name)
except ImportError as exc:
    emit({"ok": False, "error": str(exc)})
else:
    version = getattr(mod, "__version__", None)
    emit({"ok": True, "version": str(version) if version is not None else None})`

// importFromScript mirrors "from module import attr": attr may be an
// attribute or a submodule that is not imported yet.
const importFromScript = prelude + `
module, attr = sys.argv[1], sys.argv[2]
try:
    mod = importlib.import_module(module)
    if not hasattr(mod, attr):
        try:
            importlib.import_module(module + "." + attr)
        except ImportError:
            raise ImportError("cannot import name %r from %r" % (attr, module))
except ImportError as exc:
    emit({"ok": False, "error": str(exc)})
else:
    emit({"ok": True})`

const torchScript = prelude + `
try:
    import torch
except ImportError as exc:
    emit({"ok": False, "error": str(exc)})
    raise SystemExit(0)
info = {"ok": True, "version": str(torch.__version__), "cuda_available": bool(torch.cuda.is_available())}
if info["cuda_available"]:
    props = torch.cuda.get_device_properties(0)
    info["cuda_version"] = torch.version.cuda
    info["device_name"] = torch.cuda.get_device_name(0)
    info["total_memory"] = int(props.total_memory)
emit(info)`
