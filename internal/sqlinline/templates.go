package sqlinline

const QInsertTemplate = `--sql caf9c831-df6e-4b0f-bb71-d8dcd0ea7276
insert into templates(
  category_id,
  project_name,
  original_image_path,
  svg_path,
  dimensions,
  printing_dimensions,
  prompt_used,
  generation_prompt,
  design_preferences,
  created_at,
  updated_at
) values (
  $1::bigint,
  nullif($2::text, ''),
  nullif($3::text, ''),
  nullif($4::text, ''),
  $5::jsonb,
  $6::jsonb,
  nullif($7::text, ''),
  nullif($8::text, ''),
  $9::jsonb,
  now(),
  now()
) returning id, created_at, updated_at;
`

const QSelectTemplateByID = `--sql 59f52935-f361-494c-9b0b-ecc4f984c4f8
select
  t.id,
  t.category_id,
  coalesce(t.project_name, ''),
  coalesce(t.original_image_path, ''),
  coalesce(t.svg_path, ''),
  t.dimensions,
  t.printing_dimensions,
  coalesce(t.prompt_used, ''),
  coalesce(t.generation_prompt, ''),
  t.design_preferences,
  t.created_at,
  t.updated_at,
  c.name
from templates t
join categories c on c.id = t.category_id
where t.id = $1::bigint
limit 1;
`

const QListTemplates = `--sql 92fb1da8-aa27-499f-99ff-328052f8a80e
select
  t.id,
  t.category_id,
  coalesce(t.project_name, ''),
  coalesce(t.original_image_path, ''),
  coalesce(t.svg_path, ''),
  t.dimensions,
  t.printing_dimensions,
  coalesce(t.prompt_used, ''),
  coalesce(t.generation_prompt, ''),
  t.design_preferences,
  t.created_at,
  t.updated_at,
  c.name
from templates t
join categories c on c.id = t.category_id
where ($1::bigint = 0 or t.category_id = $1::bigint)
order by t.created_at desc, t.id desc;
`

const QListTemplatesByIDs = `--sql 60438129-bbfa-4a74-9cb1-43c6b49ee422
select
  t.id,
  t.category_id,
  coalesce(t.project_name, ''),
  coalesce(t.original_image_path, ''),
  coalesce(t.svg_path, ''),
  t.dimensions,
  t.printing_dimensions,
  coalesce(t.prompt_used, ''),
  coalesce(t.generation_prompt, ''),
  t.design_preferences,
  t.created_at,
  t.updated_at,
  c.name
from templates t
join categories c on c.id = t.category_id
where t.id = any($1::bigint[])
order by t.id asc;
`

const QListTemplatesByProject = `--sql 9911ea1a-a02c-4c13-b14f-1c676a01b70a
select
  t.id,
  t.category_id,
  coalesce(t.project_name, ''),
  coalesce(t.original_image_path, ''),
  coalesce(t.svg_path, ''),
  t.dimensions,
  t.printing_dimensions,
  coalesce(t.prompt_used, ''),
  coalesce(t.generation_prompt, ''),
  t.design_preferences,
  t.created_at,
  t.updated_at,
  c.name
from templates t
join categories c on c.id = t.category_id
where t.project_name = $1::text
order by t.created_at desc, t.id desc;
`
